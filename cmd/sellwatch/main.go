// Package main provides the sellwatch command line
package main

import "sellwatch/internal/cli"

func main() {
	cli.Execute()
}
