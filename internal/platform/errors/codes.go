// Package errors provides structured error handling for the proxy engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Persona errors
	CodePersonaEmptyDisplayName   Code = "PERSONA_EMPTY_DISPLAY_NAME"
	CodePersonaDisplayNameTooLong Code = "PERSONA_DISPLAY_NAME_TOO_LONG"
	CodePersonaEmptyVariantName   Code = "PERSONA_EMPTY_VARIANT_NAME"

	// Dice errors
	CodeDiceEmptyExpression    Code = "DICE_EMPTY_EXPRESSION"
	CodeDiceInvalidExpression  Code = "DICE_INVALID_EXPRESSION"
	CodeDiceExpressionTooLarge Code = "DICE_EXPRESSION_TOO_LARGE"

	// Game data errors
	CodeGameDataNotFound  Code = "GAME_DATA_NOT_FOUND"
	CodeGameDataEmptyPool Code = "GAME_DATA_EMPTY_POOL"

	// Macro errors
	CodeMacroHandlerFailed Code = "MACRO_HANDLER_FAILED"
	CodeMacroBadArguments  Code = "MACRO_BAD_ARGUMENTS"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// String returns the code as a string.
func (c Code) String() string {
	return string(c)
}
