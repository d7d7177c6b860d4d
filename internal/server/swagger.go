package server

//go:generate swag init -g internal/server/server.go -o docs

// @title hakobu API
// @version 0.1
// @description Interactive documentation for the hakobu asset lifecycle API surface.
// @contact.name hakobu Maintainers
// @contact.url https://github.com/rinwao/hakobu
// @BasePath /
