/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/betree/cmd/betree/cmd"

func main() {
	cmd.Execute()
}
