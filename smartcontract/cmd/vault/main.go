package main

import (
	"os"

	"github.com/malbeclabs/solvault/smartcontract/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
