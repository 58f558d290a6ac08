package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/matchbox-ai/outreach-cli/internal/outreach"
	"github.com/matchbox-ai/outreach-cli/internal/store"
	"github.com/matchbox-ai/outreach-cli/pkg/instagram"
	"github.com/matchbox-ai/outreach-cli/pkg/llm"
	"github.com/matchbox-ai/outreach-cli/pkg/mailbox"
	"github.com/matchbox-ai/outreach-cli/pkg/vapi"
)

// env bundles the shared collaborators the commands need.
type env struct {
	Store     store.Store
	AI        llm.Client
	Search    instagram.Client
	Mail      mailbox.Mailbox
	Templates outreach.Templates
	Escalator *outreach.Escalator
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv constructs the store and vendor clients from config and runs
// migrations. The escalator is nil when calling is not configured.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	if cfg.LLM.Key == "" {
		st.Close()
		return nil, eris.New("llm.key is required")
	}
	ai := llm.NewClient(cfg.LLM.Key,
		llm.WithModel(cfg.LLM.Model),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
	)

	search := instagram.NewClient(cfg.Instagram.Key,
		instagram.WithBaseURL(cfg.Instagram.BaseURL),
		instagram.WithHost(cfg.Instagram.Host),
		instagram.WithRateLimit(cfg.Instagram.RPS),
	)

	mail := mailbox.New(mailbox.Config{
		SMTPHost: cfg.Mail.SMTPHost,
		SMTPPort: cfg.Mail.SMTPPort,
		IMAPHost: cfg.Mail.IMAPHost,
		IMAPPort: cfg.Mail.IMAPPort,
		Address:  cfg.Mail.Address,
		Password: cfg.Mail.Password,
		Timeout:  cfg.Mail.TimeoutSecs,
	})

	tmpl, err := outreach.LoadTemplates(cfg.Outreach.TemplatesPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	e := &env{
		Store:     st,
		AI:        ai,
		Search:    search,
		Mail:      mail,
		Templates: tmpl,
	}

	if cfg.Vapi.Key != "" && cfg.Vapi.AssistantID != "" {
		caller := vapi.NewClient(cfg.Vapi.Key, vapi.WithBaseURL(cfg.Vapi.BaseURL))
		e.Escalator = outreach.NewEscalator(caller, cfg.Vapi.AssistantID, cfg.Vapi.PhoneNumberID, tmpl)
	}

	return e, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "", "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

func outreachTimeout() time.Duration {
	return time.Duration(cfg.Outreach.TimeoutHours) * time.Hour
}

func pollInterval() time.Duration {
	return time.Duration(cfg.Outreach.PollIntervalSecs) * time.Second
}
