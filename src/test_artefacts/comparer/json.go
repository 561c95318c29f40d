package comparer

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// JSONRawMessage compara json.RawMessage pelo conteúdo decodificado,
// indiferente à ordem das chaves. É o critério certo para payloads servidos
// do cache: precisam ser semanticamente iguais aos recomputados, não
// byte a byte.
func JSONRawMessage() cmp.Option {
	return cmp.Transformer("decodeJSON", func(raw json.RawMessage) interface{} {
		if len(raw) == 0 {
			return nil
		}

		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			// payload que não é JSON compara pelo texto cru
			return string(raw)
		}

		return decoded
	})
}
