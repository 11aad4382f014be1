package output

import (
	"encoding/json"

	"github.com/netwho/netwho/pkg/model"
)

func ToJSON(entries []model.SocketEntry) (string, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
