// Command evaluate_batch runs the evaluation pipeline over every supported CV
// in a directory and prints one JSON envelope per line.
//
//	go run ./scripts -dir ./cvs
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/cv-engine/internal/config"
	"alfredoptarigan/cv-engine/internal/extraction"
	"alfredoptarigan/cv-engine/internal/llm"
	"alfredoptarigan/cv-engine/internal/models"
	"alfredoptarigan/cv-engine/internal/services"
	"alfredoptarigan/cv-engine/internal/skills"
)

type batchResult struct {
	Path string `json:"path"`
	*models.EvaluationResponse
}

func main() {
	dir := flag.String("dir", "./cvs", "directory to scan for CV files")
	noSkills := flag.Bool("no-skills", false, "skip keyword skill extraction")
	flag.Parse()

	cfg := config.Load()
	zl, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()
	factory := extraction.NewExtractorFactory(zl)

	paths, err := collectFiles(*dir, factory)
	if err != nil {
		zl.Fatal("failed to scan directory", zap.String("dir", *dir), zap.Error(err))
	}
	if len(paths) == 0 {
		zl.Warn("no supported CV files found", zap.String("dir", *dir), zap.Strings("formats", factory.SupportedTypes()))
		return
	}

	var backend llm.Backend
	switch cfg.LLM.Provider {
	case "gemini":
		backend, err = llm.NewGeminiBackend(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			zl.Fatal("failed to initialize gemini", zap.Error(err))
		}
	default:
		backend = llm.NewOllamaBackend(cfg.LLM.OllamaURL, cfg.LLM.Timeout)
	}

	skillDB, err := skills.Default()
	if err != nil {
		zl.Fatal("failed to load skill database", zap.Error(err))
	}

	cvService := services.NewCVEvaluationService(
		factory,
		extraction.NewTextCleaner(),
		skills.NewExtractor(skillDB, zl),
		llm.NewEvaluator(backend, llm.Options{
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		}, zl),
		zl,
	)

	var (
		mu      sync.Mutex
		enc     = json.NewEncoder(os.Stdout)
		failed  int
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(max(cfg.Worker.Concurrency, 1))

	for _, path := range paths {
		g.Go(func() error {
			resp := cvService.EvaluateFile(gctx, path, filepath.Base(path), !*noSkills)

			mu.Lock()
			defer mu.Unlock()
			if !resp.Success {
				failed++
			}
			return enc.Encode(batchResult{Path: path, EvaluationResponse: resp})
		})
	}
	if err := g.Wait(); err != nil {
		zl.Fatal("failed to write results", zap.Error(err))
	}

	zl.Info("batch finished", zap.Int("files", len(paths)), zap.Int("failed", failed))
}

// collectFiles lists supported files under dir in lexical order.
func collectFiles(dir string, factory extraction.ExtractorFactory) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && factory.IsSupported(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
