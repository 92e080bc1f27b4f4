package main

import "github.com/technicalserena/tunegram/cmd"

func main() {
	cmd.Execute()
}
