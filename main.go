package main

import "github.com/mailsift/mailsift/internal/cli"

func main() {
	cli.Execute()
}
