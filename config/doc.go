// Package config loads the YAML configuration shared by the runtime and
// the hostbridge command.
//
//	log:
//	  level: debug
//	cache:
//	  initial_capacity: 8
//	  load_factor: 0.5
//	classifier: tostring-tag
//	aliases:
//	  HTMLDivElement: Element
//	isolates:
//	  - name: main
//	  - name: worker
//	    hash: 7
//
// Missing keys keep their defaults. Schema exports the JSON schema.
package config
