// Command interviewd serves the voice interview orchestrator.
package main

import (
	"log"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/config"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/gateway"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
	policyopenai "github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy/openai"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/resume"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/store"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt/deepgram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("loading configuration:", err)
	}

	var deepgramOpts []deepgram.ClientOption
	if cfg.DeepgramModel != "" {
		deepgramOpts = append(deepgramOpts, deepgram.WithModel(cfg.DeepgramModel))
	}
	transcriber, err := deepgram.NewClient(deepgramOpts...)
	if err != nil {
		log.Fatalln("building transcriber:", err)
	}

	var engine policy.Engine
	if cfg.OpenAIAPIKey != "" {
		engine = policyopenai.NewEngineWithAPIKey(cfg.OpenAIAPIKey)
	} else {
		engine = policyopenai.NewEngine()
	}

	fallback := policy.NewFallbackPool()
	if cfg.FallbackPoolPath != "" {
		if fallback, err = policy.LoadFallbackPool(cfg.FallbackPoolPath); err != nil {
			log.Fatalln("loading fallback pool:", err)
		}
	}

	var recordStore store.Store
	if cfg.MySQLDSN != "" {
		recordStore, err = store.NewMySqlStore(cfg.MySQLDSN)
		if err != nil {
			log.Fatalln("connecting to mysql:", err)
		}
	} else {
		log.Println("MYSQL_DSN unset, interview records are held in memory only")
		recordStore = store.NewMemoryStore()
	}

	registry, err := interview.NewRegistry(
		interview.WithTranscriber(transcriber),
		interview.WithPolicyEngine(engine),
		interview.WithFallbackPool(fallback),
		interview.WithContextLoader(resume.NewClient(cfg.ResumeServiceURL)),
		interview.WithStore(recordStore),
		interview.WithSessionDefaults(interview.SessionConfig{
			MaxQuestions:       cfg.MaxQuestions,
			MinAnswerSeconds:   cfg.MinAnswerSeconds,
			IdleTimeoutSeconds: cfg.IdleTimeoutSeconds,
			EndpointSilenceMs:  cfg.EndpointSilenceMs,
		}),
	)
	if err != nil {
		log.Fatalln("building session registry:", err)
	}
	if err := registry.StartJanitor(); err != nil {
		log.Fatalln("starting registry janitor:", err)
	}
	defer registry.StopJanitor()

	server := gateway.New(registry, gateway.WithAllowedOrigins(cfg.AllowedOrigins))
	log.Println("interviewd listening on", cfg.ListenAddr)
	if err := server.Run(cfg.ListenAddr); err != nil {
		log.Fatalln("server stopped:", err)
	}
}
