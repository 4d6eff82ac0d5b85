package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           FD Catalog API
// @version         0.1.0
// @description     Fixed-deposit plan catalog, rate rules, and interest calculation.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
