package main

import (
	"log"

	"signroom-backend/internal/cache"
	"signroom-backend/internal/config"
	"signroom-backend/internal/database"
	"signroom-backend/internal/hub"
	"signroom-backend/internal/server"
	"signroom-backend/internal/store"
)

func main() {
	// 설정 로드
	cfg := config.Load()

	// 데이터베이스 연결
	db, err := database.ConnectDB()
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close()

	// Ping 테스트
	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}
	log.Printf("✅ Database connected successfully")

	// Redis 연결 (선택적 - 없으면 서명은 메모리에만 유지)
	var sigCache *cache.RedisClient
	if cfg.Redis.Enabled {
		sigCache, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Room.SignatureTTL)
		if err != nil {
			log.Printf("⚠️ Redis connection failed: %v (signature retention disabled)", err)
			sigCache = nil
		}
	} else {
		log.Println("ℹ️ Redis disabled (signature retention disabled)")
	}
	if sigCache != nil {
		defer sigCache.Close()
	}

	roomStore := store.NewRoomStore(db)
	roomHub := hub.NewRoomHub(roomStore, sigCache)

	// 서버 생성 및 설정
	srv := server.New(cfg, db, roomStore, roomHub, sigCache)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	// 서버 시작
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
