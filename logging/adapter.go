// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SearchAdapter satisfies the key/value Logger interface the websearch
// providers expect, backed by a logrus logger.
type SearchAdapter struct {
	logger *logrus.Logger
}

// NewSearchAdapter wraps logger for use by provider packages.
func NewSearchAdapter(logger *logrus.Logger) *SearchAdapter {
	return &SearchAdapter{logger: logger}
}

func (a *SearchAdapter) Debug(message string, keyValuePairs ...any) {
	a.logger.WithFields(pairsToFields(keyValuePairs)).Debug(message)
}

func (a *SearchAdapter) Info(message string, keyValuePairs ...any) {
	a.logger.WithFields(pairsToFields(keyValuePairs)).Info(message)
}

func (a *SearchAdapter) Warn(message string, keyValuePairs ...any) {
	a.logger.WithFields(pairsToFields(keyValuePairs)).Warn(message)
}

func (a *SearchAdapter) Error(message string, keyValuePairs ...any) {
	a.logger.WithFields(pairsToFields(keyValuePairs)).Error(message)
}

func pairsToFields(keyValuePairs []any) logrus.Fields {
	fields := make(logrus.Fields, len(keyValuePairs)/2)
	for i := 0; i+1 < len(keyValuePairs); i += 2 {
		key, ok := keyValuePairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyValuePairs[i])
		}
		fields[key] = keyValuePairs[i+1]
	}
	return fields
}
