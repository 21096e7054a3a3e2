/*
Package config loads pipeline manifests.

	            +-------------+
	            |  Manifest   |
	            | (pipeline)  |
	            +------+------+
	                   |
	      +-----------+-----------+-----------+
	      |           |                       |
	+-----+-----+ +---+-----+           +----+----+
	|   YAML    | |  JSON   |           |   HCL   |
	| Parser    | | Parser  |           | Parser  |
	+-----------+ +---------+           +---------+

🎯 Purpose:
- Reads a manifest from a file and picks a parser by extension
- Rejects unknown fields in every format
- Converts the manifest into an operation.Pipeline

🔄 Flow:
1. Load reads the file
2. GetParser picks YAML, JSON or HCL (.rplc files try YAML, then HCL)
3. Validate checks enum values, ranges and limits
4. Pipeline hands the result to the engine

Every content problem wraps ErrManifest, so callers can tell a bad manifest
from a missing one.

🔍 Example (YAML):

	operations:
	  - find: 'colou?r'
	    with: hue
	  - find: TODO
	    with: DONE
	    literal: true
	    limit: 1
	include: ["*.go", "cmd/**"]
	transaction: file
	policies:
	  require_match: true

🔍 Example (HCL):

	transaction = "file"

	operation {
	  find = "v1\\.\\d+"
	  with = "v2.0"
	}

	policies {
	  expect = 3
	}
*/
package config
