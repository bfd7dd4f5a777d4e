package likes

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		raw        RawResponse
		minimum    int
		kind       Kind
		likesAdded int
		errCode    string
	}{
		{
			name:       "full success",
			raw:        RawResponse{Success: true, LikesAdded: 150, Player: "Ana", UID: "123"},
			minimum:    100,
			kind:       KindSuccess,
			likesAdded: 150,
		},
		{
			name:       "exactly at minimum",
			raw:        RawResponse{Success: true, LikesAdded: 100, Player: "Ana"},
			minimum:    100,
			kind:       KindSuccess,
			likesAdded: 100,
		},
		{
			name:       "insufficient likes error",
			raw:        RawResponse{Error: ErrInsufficientLikes, LikesAdded: 30, Player: "Bruno", UID: "456"},
			minimum:    100,
			kind:       KindPartial,
			likesAdded: 30,
		},
		{
			name:       "success below minimum is partial",
			raw:        RawResponse{Success: true, LikesAdded: 40, Player: "Carla"},
			minimum:    100,
			kind:       KindPartial,
			likesAdded: 40,
		},
		{
			name:    "timeout",
			raw:     RawResponse{Error: ErrCodeTimeout, Message: "Tempo de resposta esgotado. Tente novamente."},
			minimum: 100,
			kind:    KindError,
			errCode: ErrCodeTimeout,
		},
		{
			name:    "player not found",
			raw:     RawResponse{Error: "player_not_found", Message: "Jogador não encontrado"},
			minimum: 100,
			kind:    KindError,
			errCode: "player_not_found",
		},
		{
			name:    "connection error",
			raw:     RawResponse{Error: ErrCodeConnectionError, Message: "Erro de conexão: dial tcp: refused"},
			minimum: 100,
			kind:    KindError,
			errCode: ErrCodeConnectionError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw, tt.minimum)
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.LikesAdded != tt.likesAdded {
				t.Fatalf("LikesAdded = %d, want %d", got.LikesAdded, tt.likesAdded)
			}
			if got.Minimum != tt.minimum {
				t.Fatalf("Minimum = %d, want %d", got.Minimum, tt.minimum)
			}
			if tt.kind == KindError && got.ErrorCode != tt.errCode {
				t.Fatalf("ErrorCode = %q, want %q", got.ErrorCode, tt.errCode)
			}
		})
	}
}

func TestClassifyDefaultErrorMessage(t *testing.T) {
	t.Parallel()
	got := Classify(RawResponse{Error: "weird_error"}, 100)
	if got.Kind != KindError {
		t.Fatalf("Kind = %v, want KindError", got.Kind)
	}
	if got.ErrorMessage != "Erro desconhecido" {
		t.Fatalf("ErrorMessage = %q", got.ErrorMessage)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	if KindSuccess.String() != "success" || KindPartial.String() != "partial" || KindError.String() != "error" {
		t.Fatal("unexpected Kind string rendering")
	}
}
