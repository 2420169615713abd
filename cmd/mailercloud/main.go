package main

import (
	// Trust store for scratch/distroless images without ca-certificates.
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	Execute()
}
