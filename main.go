package main

import "github.com/ValentinKolb/dSEQ/cmd"

func main() {
	cmd.Execute()
}
