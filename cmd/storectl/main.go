// Package main содержит CLI администратора витрины cheapplay для работы с заказами в обход HTTP API.
package main

import (
	"os"

	"github.com/mmeshcher/cheapplay/internal/repository"
	"github.com/mmeshcher/cheapplay/internal/service"
)

func main() {
	rootCmd := newRootCommand(func(dsn string) (orderService, error) {
		repo, err := repository.NewPostgresRepository(dsn)
		if err != nil {
			return nil, err
		}
		return service.NewService(repo), nil
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
