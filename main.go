package main

import "github.com/redactyl/lss/cmd/lss"

func main() { lss.Execute() }
