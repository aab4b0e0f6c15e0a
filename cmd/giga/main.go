package main

import (
	"giga/cmd/handlers"
	"giga/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
