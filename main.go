package main

import (
	"fmt"
	"os"

	"fjacquet/bankstmt/cmd/export"
	"fjacquet/bankstmt/cmd/ingest"
	"fjacquet/bankstmt/cmd/report"
	"fjacquet/bankstmt/cmd/root"
	"fjacquet/bankstmt/cmd/statements"
	"fjacquet/bankstmt/cmd/suspense"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(statements.Cmd)
	root.Cmd.AddCommand(suspense.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(report.Cmd)
}

func main() {
	err := root.Cmd.Execute()
	root.Teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
