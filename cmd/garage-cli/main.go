package main

import (
	"garage-invoice-backend/cmd/garage-cli/cmd"
)

func main() {
	cmd.Execute()
}
