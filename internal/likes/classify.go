package likes

// Kind is the classified result of one remote call.
type Kind int

const (
	// KindSuccess: the remote delivered at least the configured minimum.
	KindSuccess Kind = iota
	// KindPartial: the remote answered but delivered fewer likes than the
	// minimum, so the send does not count.
	KindPartial
	// KindError: timeout, connection failure, or any unrecognized remote error.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindPartial:
		return "partial"
	default:
		return "error"
	}
}

// Outcome is the classified result of one send attempt. Exactly one Kind is
// set; Raw keeps the full payload for message rendering.
type Outcome struct {
	Kind Kind

	// LikesAdded is the delivered amount (0 for KindError).
	LikesAdded int

	// Player is the player name when the remote reported one.
	Player string

	// Minimum is the configured threshold the attempt was judged against.
	Minimum int

	// ErrorCode and ErrorMessage are set for KindError.
	ErrorCode    string
	ErrorMessage string

	Raw RawResponse
}

// Classify maps a raw remote response onto an Outcome. Pure and
// deterministic; first match wins.
//
// A success=true response below the minimum is treated as Partial: the
// business rule is "likesAdded >= minimum counts", and the remote did
// deliver something, so the shortfall report is the honest one.
func Classify(raw RawResponse, minimum int) Outcome {
	switch {
	case raw.Success && raw.LikesAdded >= minimum:
		return Outcome{
			Kind:       KindSuccess,
			LikesAdded: raw.LikesAdded,
			Player:     raw.Player,
			Minimum:    minimum,
			Raw:        raw,
		}
	case raw.Success || raw.Error == ErrInsufficientLikes:
		return Outcome{
			Kind:       KindPartial,
			LikesAdded: raw.LikesAdded,
			Player:     raw.Player,
			Minimum:    minimum,
			Raw:        raw,
		}
	default:
		msg := raw.Message
		if msg == "" {
			msg = "Erro desconhecido"
		}
		return Outcome{
			Kind:         KindError,
			Minimum:      minimum,
			ErrorCode:    raw.Error,
			ErrorMessage: msg,
			Raw:          raw,
		}
	}
}
