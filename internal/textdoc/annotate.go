package textdoc

// Per-token annotation life cycle: untranslated → translated → detailed,
// with explicit reverse transitions. The state is derived from the token's
// fields rather than stored separately, so it survives serialization.

type AnnotationState string

const (
	StateUntranslated AnnotationState = "untranslated"
	StateTranslated   AnnotationState = "translated"
	StateDetailed     AnnotationState = "detailed"
)

func StateOf(tok Token) AnnotationState {
	switch {
	case tok.Translation == "":
		return StateUntranslated
	case tok.Definition != nil && tok.ShowDefinition:
		return StateDetailed
	default:
		return StateTranslated
	}
}

// TokenAction is what activating a word token requires next.
type TokenAction int

const (
	// TokenActionNone: non-word token, or a request is already in flight.
	TokenActionNone TokenAction = iota
	// TokenActionFetchTranslation: request a short translation.
	TokenActionFetchTranslation
	// TokenActionClear: second activation of a translated word clears its
	// translation and definition.
	TokenActionClear
)

// OnTokenActivate decides the transition for a tap on the token itself.
// Activation while a request is in flight is a no-op.
func OnTokenActivate(tok Token, inFlight bool) TokenAction {
	if !tok.IsWord() || inFlight {
		return TokenActionNone
	}
	if StateOf(tok) == StateUntranslated {
		return TokenActionFetchTranslation
	}
	return TokenActionClear
}

// BadgeAction is what activating the translation badge requires next.
type BadgeAction int

const (
	BadgeActionNone BadgeAction = iota
	// BadgeActionFetchDefinition: no definition cached yet; fetch and show.
	BadgeActionFetchDefinition
	// BadgeActionShow: definition cached but hidden; show it.
	BadgeActionShow
	// BadgeActionHide: definition visible; hide it (stays cached).
	BadgeActionHide
)

// OnBadgeActivate decides the transition for a tap on the translation badge.
// The badge only exists once the token is translated.
func OnBadgeActivate(tok Token, inFlight bool) BadgeAction {
	if !tok.IsWord() || inFlight || StateOf(tok) == StateUntranslated {
		return BadgeActionNone
	}
	switch {
	case tok.Definition == nil:
		return BadgeActionFetchDefinition
	case tok.ShowDefinition:
		return BadgeActionHide
	default:
		return BadgeActionShow
	}
}
