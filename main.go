package main

import "github.com/frahmantamala/vacation-management/cmd"

func main() {
	cmd.Execute()
}
