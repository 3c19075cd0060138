package gemini

import "context"

// Role yang dimengerti Gemini. Di DB kita simpan "assistant",
// ke model harus jadi "model" (lihat handlers.toModelRole).
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn satu giliran percakapan versi model-facing.
type Turn struct {
	Role string
	Text string
}

// Service membungkus pemanggilan model eksternal supaya handler bisa
// dites dengan fake tanpa network. Implementasi asli: Client di client.go.
type Service interface {
	// StreamChat kirim history + pesan terakhir, panggil onChunk per potongan
	// teks yang datang, dan kembalikan teks lengkap setelah stream selesai.
	// Kalau onChunk balikin error (mis. client putus), stream dihentikan.
	StreamChat(ctx context.Context, history []Turn, message string, onChunk func(string) error) (string, error)

	// ExtractNotes satu panggilan non-stream: teks jawaban tutor -> catatan markdown.
	ExtractNotes(ctx context.Context, assistantText string) (string, error)

	// ResolveDoubt satu panggilan non-stream dengan budget output kecil.
	ResolveDoubt(ctx context.Context, selectedText, contextText string) (string, error)
}
