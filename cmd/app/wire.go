//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/smart-faq/internal/bootstrap"
	"github.com/yanqian/smart-faq/internal/domain/faq"
	"github.com/yanqian/smart-faq/internal/infra/config"
	httpiface "github.com/yanqian/smart-faq/internal/interface/http"
	"github.com/yanqian/smart-faq/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideFAQConfig,
		provideAnalyticsConfig,
		provideTokenCounter,
		provideChatGPTClient,
		provideEmbedder,
		provideLLM,
		provideStorage,
		provideFAQRepository,
		provideAnalyticsRepository,
		provideVectorIndex,
		provideValkeyClient,
		provideCache,
		provideJobQueue,
		provideAnalyticsService,
		provideRecorder,
		provideSeedSource,
		faq.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
