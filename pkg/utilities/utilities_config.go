package utilities

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfigObj is the JSON-shaped half of a config type; ConvertToDomain
// maps it into the domain representation the services consume.
type JsonConfigObj[T any] interface {
	ConvertToDomain() T
}

func ReadConfig[T JsonConfigObj[U], U any](file string) (U, error) {
	var empty U

	fileContent, err := os.ReadFile(file)
	if err != nil {
		return empty, fmt.Errorf("read config %s: %w", file, err)
	}

	var config T
	if err := json.Unmarshal(fileContent, &config); err != nil {
		return empty, fmt.Errorf("parse config %s: %w", file, err)
	}

	return config.ConvertToDomain(), nil
}

func ConvertJsonArrayToDomain[T JsonConfigObj[U], U any](jsonArray []T) []U {
	var domainArray []U
	for _, item := range jsonArray {
		domainArray = append(domainArray, item.ConvertToDomain())
	}
	return domainArray
}
