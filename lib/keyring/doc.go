// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package keyring maps sender UUIDs to the public keys their messages
// are signed with.
//
// A keyring file is JSONC (JSON with comments and trailing commas,
// stripped with tidwall/jsonc before parsing) so operators can
// annotate which device each key belongs to:
//
//	{
//	  "keys": [
//	    // greenhouse sensor, rack 4
//	    {
//	      "sender": "6eac4d0b-16e6-4508-8c46-22e7451ea5a1",
//	      "algorithm": "ed25519",
//	      "public_key": "b+9D3ynbe7Gw2cZmvMdDOo2/4z/FWDCFfP0HFRVl3a0=",
//	    },
//	  ],
//	}
//
// public_key is either base64 of the raw key (32 bytes for ed25519,
// 64 or 65 bytes of uncompressed point for ecdsa-p256) or a PEM
// "PUBLIC KEY" block. A sender may appear only once.
package keyring
