package main

import (
	"github.com/joho/godotenv"

	"github.com/purpose168/deskchat-cn/internal/cmd"
	"github.com/purpose168/deskchat-cn/internal/log"
)

func main() {
	defer log.RecoverPanic("main", nil)

	// .env 不存在不算错误
	_ = godotenv.Load()

	cmd.Execute()
}
