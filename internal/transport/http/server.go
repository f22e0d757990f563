package http

import (
	"context"
	"net/http"
	"time"
)

// Server: обёртка над стандартным http.Server
type Server struct {
	httpServer *http.Server
}

// NewServer создаёт и конфигурирует экземпляр Server
// timeout ограничивает чтение и запись; заголовки читаются не дольше половины timeout,
// простаивающие keep-alive соединения живут вчетверо дольше
func NewServer(port string, handler http.Handler, timeout time.Duration) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              port,
			Handler:           handler,
			ReadHeaderTimeout: timeout / 2,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout,
			IdleTimeout:       4 * timeout,
		},
	}
}

// Run запускает HTTP-сервер; после Shutdown возвращает http.ErrServerClosed
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown дожидается завершения активных запросов и останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
