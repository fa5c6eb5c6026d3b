// Package mobile 是 gomobile 绑定的入口：在 App 进程内启动本地对弈服务。
package mobile

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"xiangqi/internal/engine"
	"xiangqi/internal/logging"
	servergame "xiangqi/internal/server/game"
	httpserver "xiangqi/internal/server/http"
)

var startOnce sync.Once

// StartServer starts the local HTTP server in the background.
// webDir: physical path to the extracted web assets
// port: port to listen on, e.g. "2888"
// depth: engine search depth, 0 keeps the default
func StartServer(webDir string, port string, depth int) {
	startOnce.Do(func() {
		log := logging.New(logging.Options{Level: "info", Format: "json", Out: os.Stderr})

		mgr := servergame.NewManager(servergame.Options{
			Engine:      engine.NewEngine(engine.DefaultTTSize),
			SearchDepth: depth,
			Logger:      log,
		})
		hub := httpserver.NewHub(log)
		mgr.SetPublisher(hub)
		h := httpserver.NewHandler(mgr, hub, log)

		srv := &http.Server{
			Addr:    "127.0.0.1:" + port,
			Handler: httpserver.NewRouter(h, webDir, webDir),
		}

		// 不能阻塞 Android UI 线程
		go hub.Run(context.Background())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("server error")
			}
		}()
	})
}
