package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewRootCommand 构建完整命令树
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	app := NewApp(in, out)

	root := &cobra.Command{
		Use:           "car-catalog",
		Short:         "Manage your car listings from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&app.Server, "server", "", "server base URL (default "+defaultServer+")")
	root.PersistentFlags().StringVar(&app.SessionPath, "session", "", "session file (default ~/.car-catalog/session.json)")
	root.PersistentFlags().DurationVar(&app.Timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		newSignUpCmd(app),
		newSignInCmd(app),
		newSignOutCmd(app),
		newWhoAmICmd(app),
		newListCmd(app),
		newAddCmd(app),
		newDeleteCmd(app),
		newBrowseCmd(app),
	)
	return root
}
