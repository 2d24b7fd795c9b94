// Package cli 车辆目录命令行客户端。
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"car-catalog/pkg/client/api"
	"car-catalog/pkg/client/controller"
	"car-catalog/pkg/client/session"
)

const defaultServer = "http://localhost:8080"

// readPassword 测试中替换，避免访问终端
var readPassword = term.ReadPassword

// App 命令共享的状态
type App struct {
	In  *bufio.Reader
	Out io.Writer

	Server      string
	SessionPath string
	Timeout     time.Duration
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		In:      bufio.NewReader(in),
		Out:     out,
		Timeout: 30 * time.Second,
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) sessionPath() (string, error) {
	if a.SessionPath != "" {
		return a.SessionPath, nil
	}
	return session.DefaultPath()
}

// server 命令行参数优先，其次是会话中记录的地址
func (a *App) server(s session.Session) string {
	switch {
	case a.Server != "":
		return a.Server
	case s.Server != "":
		return s.Server
	default:
		return defaultServer
	}
}

// anonymousClient 注册、登录使用
func (a *App) anonymousClient() (*api.Client, error) {
	return api.New(a.server(session.Session{}), api.WithTimeout(a.Timeout))
}

// authedClient 读取本地会话并携带令牌
func (a *App) authedClient() (*api.Client, error) {
	path, err := a.sessionPath()
	if err != nil {
		return nil, err
	}
	s, err := session.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w, run sign-in first", err)
	}
	return api.New(a.server(s), api.WithTimeout(a.Timeout), api.WithToken(s.Token))
}

func (a *App) controller(ctx context.Context) (*controller.Controller, error) {
	c, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	ctl := controller.New(c)
	if err := ctl.Refresh(ctx); err != nil {
		return nil, err
	}
	return ctl, nil
}

func (a *App) readLine(prompt string) (string, error) {
	a.printf("%s", prompt)
	line, err := a.In.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password 未通过参数给出时从终端读取，不回显
func (a *App) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	a.printf("Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	a.printf("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (a *App) confirm(prompt string) bool {
	answer, err := a.readLine(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
