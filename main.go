package main

import (
	"os"

	"frameworks/dbdoctor/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
