package keyboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aspireledger/aspire-bot/internal/bot/action"
)

const (
	CallbackDataSeparator  = ":"
	CallbackDataLimitBytes = 64

	// ActionPrefix marks callback payloads that carry a menu action id.
	ActionPrefix = "act"
	// SaveData is the payload of the save button shown while editing a field.
	SaveData = "save"
	// QuickSaveData is the payload of the quick-add confirmation button.
	QuickSaveData = "quick_save"
)

// EncodeCallback joins a handler identifier and its payload, enforcing the
// Telegram 64-byte callback data limit.
func EncodeCallback(unique, data string) (string, error) {
	if data == "" {
		if len(unique) > CallbackDataLimitBytes {
			return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(unique))
		}
		return unique, nil
	}

	payload := unique + CallbackDataSeparator + data
	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

// DecodeCallback splits callback data back into identifier and payload.
func DecodeCallback(callbackData string) (unique, data string, err error) {
	if callbackData == "" {
		return "", "", errors.New("callback data is empty")
	}

	idx := strings.Index(callbackData, CallbackDataSeparator)
	if idx == -1 {
		return callbackData, "", nil
	}

	return callbackData[:idx], callbackData[idx+len(CallbackDataSeparator):], nil
}

// EncodeAction renders a menu action as callback data ("act:<id>"). Action
// ids never approach the payload limit, so the error path is impossible here.
func EncodeAction(a action.Action) string {
	payload, _ := EncodeCallback(ActionPrefix, strconv.Itoa(a.ID()))
	return payload
}

// DecodeAction parses callback data produced by EncodeAction. A payload
// that is not an integer or maps to no known action is a routing error.
func DecodeAction(callbackData string) (action.Action, error) {
	unique, data, err := DecodeCallback(callbackData)
	if err != nil {
		return action.Action{}, err
	}

	if unique != ActionPrefix {
		return action.Action{}, fmt.Errorf("not an action payload: %q", callbackData)
	}

	id, err := strconv.Atoi(data)
	if err != nil {
		return action.Action{}, fmt.Errorf("malformed action id %q: %w", data, err)
	}

	return action.Parse(id)
}
