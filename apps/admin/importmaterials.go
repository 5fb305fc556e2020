package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (cli *commandLine) importMaterialsCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "import-materials -u USERNAME FILE.xlsx",
		Short: "Bulk import sign materials from a spreadsheet for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usr, err := cli.usrSvc.GetByUsername(cmd.Context(), uname)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening spreadsheet")
			}
			defer f.Close()

			res, err := cli.signSvc.ImportSheet(cmd.Context(), usr.ID, f)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "%d material(s) imported\n", res.Success)
			for _, e := range res.Errors {
				_, _ = fmt.Fprintf(cli.out, "  %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "the owner of the materials")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
