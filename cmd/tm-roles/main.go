package main

import "github.com/pfrederiksen/tm-roles/internal/cli"

func main() {
	cli.Execute()
}
