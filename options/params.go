package options

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	jsoniter "github.com/json-iterator/go"

	"github.com/mjettp/visual-system-simulator/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadValueMap reads a simulation parameter file: a flat JSON object mapping
// parameter names to booleans or numbers. Entries of any other type are
// ignored, matching the pipeline's "unrecognized keys are ignored" contract.
func LoadValueMap(path string) (pipeline.ValueMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}
	return ParseValueMap(data)
}

// ParseValueMap decodes parameter JSON into a ValueMap.
func ParseValueMap(data []byte) (pipeline.ValueMap, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	params := make(pipeline.ValueMap, len(raw))
	for name, v := range raw {
		switch v := v.(type) {
		case bool:
			params[name] = pipeline.Bool(v)
		case float64:
			params[name] = pipeline.Number(v)
		default:
			log.Printf("Ignoring parameter %q of unsupported type %T", name, v)
		}
	}
	return params, nil
}

// WatchValueMap watches the parameter file and invokes onChange with the
// freshly parsed ValueMap whenever it is rewritten. Editors that replace the
// file (rename-over) are handled by watching the parent directory. The
// returned watcher must be closed by the caller.
func WatchValueMap(path string, onChange func(pipeline.ValueMap)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve params path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch params dir: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				params, err := LoadValueMap(abs)
				if err != nil {
					log.Printf("Reloading params: %v", err)
					continue
				}
				log.Printf("Reloaded %d simulation parameters from %s", len(params), path)
				onChange(params)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Params watcher: %v", err)
			}
		}
	}()

	return watcher, nil
}
