package core

import (
	"context"
	"sync"
)

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	reqs  []GenerateRequest
}

func (f *fakeLLM) Generate(_ context.Context, req GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) calls() []GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GenerateRequest(nil), f.reqs...)
}

type fakeExtractor struct {
	text  string
	err   error
	paths []string
	mimes []string
}

func (f *fakeExtractor) Extract(_ context.Context, path, mimeType string) (string, error) {
	f.paths = append(f.paths, path)
	f.mimes = append(f.mimes, mimeType)
	return f.text, f.err
}

type fakeSpeaker struct {
	audio     string
	err       error
	texts     []string
	languages []string
}

func (f *fakeSpeaker) Synthesize(_ context.Context, text, language string) (string, error) {
	f.texts = append(f.texts, text)
	f.languages = append(f.languages, language)
	return f.audio, f.err
}
