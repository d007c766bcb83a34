package main

import "github.com/leetcurve/backend/internal/cli"

func main() {
	cli.Execute()
}
