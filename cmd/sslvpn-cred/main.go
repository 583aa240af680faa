package main

import (
	"os"

	"github.com/mazurov/sslvpn-credstore/internal/client/commands"
)

func main() {
	os.Exit(commands.Execute())
}
