//go:build !unix

package ply

import "os"

func openSource(path string, _ bool) (source, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	return f, false, nil
}
