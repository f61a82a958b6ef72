package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"newsnotes/internal/auth"
	"newsnotes/internal/config"
	"newsnotes/internal/feed"
	"newsnotes/internal/news"
	"newsnotes/internal/notes"
	"newsnotes/internal/store"
	"newsnotes/internal/users"
)

func main() {
	cfg := config.Load()

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalln("Failed to open error_logger file")
	}
	defer func(logFile *os.File) {
		err := logFile.Close()
		if err != nil {
			log.Fatalln("Failed to close error_logger file")
		}
	}(logFile)

	error_logger := slog.New(slog.NewTextHandler(logFile, nil))

	if cfg.JWTKey == "" {
		error_logger.Error("No JWT_KEY found in environment")
		return
	}

	st := store.Open(cfg.DataFile, error_logger)
	if _, err := st.Load(); err != nil {
		error_logger.Error(fmt.Sprintf("error opening data file: %v", err.Error()))
		return
	}

	hub := feed.NewHub(error_logger)

	// Every data file write wakes feed subscribers, the store's own saves
	// included, so mutations through the API emit a reload alongside their
	// explicit event. Clients treat both as a cue to refetch.
	if err := st.Watch(context.Background(), func() {
		hub.Broadcast(feed.Event{Kind: feed.EventReload})
	}); err != nil {
		error_logger.Error(fmt.Sprintf("error watching data file: %v", err.Error()))
	}

	userService := users.NewService(st)
	newsService := news.NewService(st)
	noteService := notes.NewService(st)

	r := gin.Default()
	r.Use(auth.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{})
	})

	api := r.Group("/api")
	users.NewHandler(userService, error_logger).Register(api)
	news.NewHandler(newsService, hub, error_logger).Register(api)
	notes.NewHandler(noteService, error_logger).Register(api)
	auth.NewHandler(userService, []byte(cfg.JWTKey), error_logger).RegisterRoutes(api)
	api.GET("/news/live", hub.Serve)

	err = r.Run(":" + cfg.Port)
	if err != nil {
		error_logger.Error(fmt.Sprintf("error starting server: %v", err.Error()))
		log.Fatal(fmt.Sprintf("error starting server: %v", err.Error()))
	}
}
