package main

import "github.com/thereayou/warbler/cmd/server"

func main() {
	server.NewServer().Run()
}
