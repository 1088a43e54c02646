package main

import "contractpilot/internal/cli"

func main() {
	cli.Execute()
}
