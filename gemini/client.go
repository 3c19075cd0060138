package gemini

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const modelName = "gemini-2.5-flash"

// Client implementasi Service di atas SDK resmi.
// Koneksi dibuat sekali saat pertama dipakai, lalu dipakai ulang.
type Client struct {
	once    sync.Once
	client  *genai.Client
	errInit error
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) init(ctx context.Context) error {
	c.once.Do(func() {
		apiKey := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY")
		if apiKey == "" {
			c.errInit = fmt.Errorf("gemini: GOOGLE_GENERATIVE_AI_API_KEY belum di-set")
			return
		}
		c.client, c.errInit = genai.NewClient(ctx, option.WithAPIKey(apiKey))
	})
	return c.errInit
}

func (c *Client) chatModel(maxTokens int32, temperature float32, system string) *genai.GenerativeModel {
	m := c.client.GenerativeModel(modelName)
	m.SetMaxOutputTokens(maxTokens)
	m.SetTemperature(temperature)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return m
}

func (c *Client) StreamChat(ctx context.Context, history []Turn, message string, onChunk func(string) error) (string, error) {
	if err := c.init(ctx); err != nil {
		return "", err
	}

	model := c.chatModel(1000, 0.7, FirstPrinciplesSystemPrompt)
	cs := model.StartChat()
	for _, t := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  t.Role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}

	iter := cs.SendMessageStream(ctx, genai.Text(message))
	full := ""
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return full, fmt.Errorf("gemini stream: %w", err)
		}
		text := responseText(resp)
		if text == "" {
			continue
		}
		full += text
		if err := onChunk(text); err != nil {
			// Caller minta berhenti (client disconnect). Teks parsial dibuang.
			return full, err
		}
	}
	return full, nil
}

func (c *Client) ExtractNotes(ctx context.Context, assistantText string) (string, error) {
	if err := c.init(ctx); err != nil {
		return "", err
	}
	// Config sama dengan createNotesModel lama: output lebih besar, temperatur rendah
	model := c.chatModel(2000, 0.3, "")
	resp, err := model.GenerateContent(ctx,
		genai.Text(NotesExtractionPrompt),
		genai.Text("Extract notes from this teaching message:\n\n"+assistantText),
	)
	if err != nil {
		return "", fmt.Errorf("gemini notes: %w", err)
	}
	return responseText(resp), nil
}

func (c *Client) ResolveDoubt(ctx context.Context, selectedText, contextText string) (string, error) {
	if err := c.init(ctx); err != nil {
		return "", err
	}
	model := c.chatModel(200, 0.7, "")
	resp, err := model.GenerateContent(ctx,
		genai.Text(DoubtResolverPrompt),
		genai.Text(fmt.Sprintf("Context:\n%s\n\nSelected text to explain:\n%q", contextText, selectedText)),
	)
	if err != nil {
		return "", fmt.Errorf("gemini doubt: %w", err)
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	out := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
	}
	return out
}
