package main

import "github.com/cargoline/apiserver/cmd"

func main() {
	cmd.Execute()
}
