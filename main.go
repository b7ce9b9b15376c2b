/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/laixingyu123/ay4/cmd"

func main() {
	cmd.Execute()
}
