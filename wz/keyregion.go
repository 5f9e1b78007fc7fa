// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import "github.com/go-wz/wzfs/internal/wzcrypto"

// KeyRegion names which AES key variant an archive was packaged with.
// It mirrors internal/wzcrypto.Region one-for-one but is exported on
// the public handle for diagnostics.
type KeyRegion int

const (
	KeyRegionGMS     KeyRegion = KeyRegion(wzcrypto.RegionGMS)
	KeyRegionMSEA    KeyRegion = KeyRegion(wzcrypto.RegionMSEA)
	KeyRegionGeneric KeyRegion = KeyRegion(wzcrypto.RegionGeneric)
)

func (r KeyRegion) String() string { return wzcrypto.Region(r).String() }
