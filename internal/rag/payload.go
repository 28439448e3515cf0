package rag

import "github.com/qdrant/go-client/qdrant"

// Payload field names used for every indexed record. Queries filter on
// payloadKeyType, so these strings are part of the collection's schema —
// changing them invalidates existing collections.
const (
	payloadKeyType          = "type"
	payloadKeyExchangeID    = "exchange_id"
	payloadKeyOrdinal       = "ordinal"
	payloadKeyUserText      = "user_text"
	payloadKeyAssistantText = "assistant_text"
	payloadKeyCombinedText  = "combined_text"
)

// recordPayload renders an IndexedRecord's metadata as a Qdrant payload map.
func recordPayload(rec IndexedRecord) map[string]any {
	return map[string]any{
		payloadKeyType:          string(rec.Type),
		payloadKeyExchangeID:    rec.ExchangeID,
		payloadKeyOrdinal:       rec.Ordinal,
		payloadKeyUserText:      rec.UserText,
		payloadKeyAssistantText: rec.AssistantText,
		payloadKeyCombinedText:  rec.CombinedText,
	}
}

// resultFromPayload converts one scored point's payload back into a
// RetrievalResult. Missing payload fields decode as empty strings rather
// than failing — a record written by an older schema should degrade, not
// abort the whole query.
func resultFromPayload(score float32, payload map[string]*qdrant.Value) RetrievalResult {
	res := RetrievalResult{Score: score}
	if payload == nil {
		return res
	}
	if v, ok := payload[payloadKeyExchangeID]; ok {
		res.ExchangeID = v.GetStringValue()
	}
	if v, ok := payload[payloadKeyUserText]; ok {
		res.UserText = v.GetStringValue()
	}
	if v, ok := payload[payloadKeyAssistantText]; ok {
		res.AssistantText = v.GetStringValue()
	}
	return res
}
