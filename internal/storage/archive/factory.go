package archive

import "fmt"

// Options selects and configures a storage backend.
type Options struct {
	Type string // "localfs" or "s3"
	Path string
	S3   S3Config
}

// Open returns the backend named by opts.Type.
func Open(opts Options) (Storage, error) {
	switch opts.Type {
	case "", "localfs":
		if opts.Path == "" {
			return nil, fmt.Errorf("localfs path required")
		}
		return NewLocalFS(opts.Path)
	case "s3":
		return NewS3(opts.S3)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", opts.Type)
	}
}
