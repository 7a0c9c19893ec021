package main

import "hotelbook/internal/cli"

func main() {
	cli.Execute()
}
