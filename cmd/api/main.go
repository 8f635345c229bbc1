// Package main provides the entry point for the SellWatch API server. It is
// equivalent to "sellwatch serve".
package main

import "sellwatch/internal/cli"

func main() {
	cli.ExecuteServe()
}
