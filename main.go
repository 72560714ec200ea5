package main

import "github.com/sensiurl/sensiurl/cmd"

func main() {
	cmd.Execute()
}
