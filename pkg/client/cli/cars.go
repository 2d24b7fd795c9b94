package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"car-catalog/pkg/client/api"
	"car-catalog/pkg/client/controller"
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your cars, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctl, err := app.controller(cmd.Context())
			if err != nil {
				return err
			}
			cars := ctl.Cars()
			if len(cars) == 0 {
				app.printf("No cars yet.\n")
				return nil
			}
			for _, car := range cars {
				app.printCar(ctl, car)
			}
			return nil
		},
	}
}

func (a *App) printCar(ctl *controller.Controller, car api.Car) {
	a.printf("%s  %s\n", car.ID, car.Title)
	a.printf("    %s\n", car.Description)
	if len(car.Tags) > 0 {
		a.printf("    tags: %s\n", strings.Join(car.Tags, ", "))
	}
	if img, ok := ctl.CurrentImage(car.ID); ok {
		a.printf("    image %s: %s\n", ctl.Indicator(car.ID), img)
	} else {
		a.printf("    image 0/0: (no images)\n")
	}
}

func newAddCmd(app *App) *cobra.Command {
	var title, description, tags string
	var images []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload images and create a car",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.authedClient()
			if err != nil {
				return err
			}

			files := make([]controller.File, 0, len(images))
			for _, p := range images {
				if len(files) == controller.MaxImages {
					// 超出部分不会上传，无需读取
					files = append(files, controller.File{Name: filepath.Base(p)})
					continue
				}
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				files = append(files, controller.File{Name: filepath.Base(p), Data: data})
			}

			ctl := controller.New(c)
			ctl.SetFields(title, description, tags)
			for _, w := range ctl.SelectImages(files) {
				app.printf("warning: %s\n", w)
			}

			car, err := ctl.Submit(cmd.Context())
			if err != nil {
				return err
			}
			app.printf("Car added successfully.\n")
			app.printCar(ctl, car)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file, repeatable (first 10 are used)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a car and its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := app.controller(cmd.Context())
			if err != nil {
				return err
			}
			err = ctl.Delete(cmd.Context(), args[0], func(car api.Car) bool {
				return yes || app.confirm(fmt.Sprintf("Delete %q?", car.Title))
			})
			if errors.Is(err, controller.ErrNotConfirmed) {
				app.printf("Cancelled.\n")
				return nil
			}
			if err != nil {
				return err
			}
			app.printf("Car deleted successfully.\n")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// newBrowseCmd 逐张浏览一条记录的图片：n 下一张，p 上一张，q 退出
func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse ID",
		Short: "Step through a car's images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := app.controller(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			found := false
			for _, car := range ctl.Cars() {
				if car.ID == id {
					found = true
					break
				}
			}
			if !found {
				return controller.ErrUnknownCar
			}

			for {
				if img, ok := ctl.CurrentImage(id); ok {
					app.printf("[%s] %s\n", ctl.Indicator(id), img)
				} else {
					app.printf("[0/0] (no images)\n")
				}
				cmdLine, err := app.readLine("(n)ext, (p)rev, (q)uit: ")
				if err != nil {
					return nil
				}
				switch cmdLine {
				case "n":
					ctl.Next(id)
				case "p":
					ctl.Prev(id)
				case "q", "":
					return nil
				}
			}
		},
	}
}
