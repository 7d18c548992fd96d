package utsf

import "sort"

// ServedSet materializes the pincodes a coverage serves within a zone,
// given the master pincode list for that zone. The result is always a
// subset of the master list, so |served| + |missing| covers the zone
// exactly. SoftExclusions are not applied here; they are a serve-time
// concern.
func ServedSet(cov *ZoneCoverage, master []int) map[int]struct{} {
	switch cov.Variant {
	case VariantFullZone:
		set := make(map[int]struct{}, len(master))
		for _, p := range master {
			set[p] = struct{}{}
		}
		return set
	case VariantFullMinusExcept:
		except := Expand(cov.ExceptRanges, cov.ExceptSingles)
		set := make(map[int]struct{}, len(master))
		for _, p := range master {
			if _, blocked := except[p]; !blocked {
				set[p] = struct{}{}
			}
		}
		return set
	case VariantOnlyServed:
		served := Expand(cov.ServedRanges, cov.ServedSingles)
		set := make(map[int]struct{}, len(served))
		for _, p := range master {
			if _, ok := served[p]; ok {
				set[p] = struct{}{}
			}
		}
		return set
	default: // NOT_SERVED or unknown
		return map[int]struct{}{}
	}
}

// MissingPincodes returns the master pincodes of a zone the coverage
// does not serve, in ascending order (master is already sorted).
func MissingPincodes(cov *ZoneCoverage, master []int) []int {
	served := ServedSet(cov, master)
	var missing []int
	for _, p := range master {
		if _, ok := served[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

// PhantomPincodes returns the explicitly enumerated served pincodes the
// master catalog does not know, in ascending order. Only enumerating
// variants can list phantoms; known reports master membership.
func PhantomPincodes(cov *ZoneCoverage, known func(int) bool) []int {
	if len(cov.ServedRanges) == 0 && len(cov.ServedSingles) == 0 {
		return nil
	}
	served := Expand(cov.ServedRanges, cov.ServedSingles)
	var phantoms []int
	for p := range served {
		if !known(p) {
			phantoms = append(phantoms, p)
		}
	}
	sort.Ints(phantoms)
	return phantoms
}

// Contains reports coverage membership for a single pincode.
// memberOfZone tells whether the pincode belongs to this zone under the
// master catalog (or a vendor zone override); the full-zone variants
// only serve zone members, while ONLY_SERVED consults its explicit
// enumeration.
func (z *ZoneCoverage) Contains(pin int, memberOfZone bool) bool {
	switch z.Variant {
	case VariantFullZone:
		return memberOfZone
	case VariantFullMinusExcept:
		return memberOfZone && !z.isExcepted(pin)
	case VariantOnlyServed:
		return z.isListed(pin)
	default:
		return false
	}
}

// SoftExcluded reports whether the pincode is temporarily blocked.
func (z *ZoneCoverage) SoftExcluded(pin int) bool {
	for _, p := range z.SoftExclusions {
		if p == pin {
			return true
		}
	}
	return false
}

func (z *ZoneCoverage) isExcepted(pin int) bool {
	for _, r := range z.ExceptRanges {
		if pin >= r.S && pin <= r.E {
			return true
		}
	}
	for _, p := range z.ExceptSingles {
		if p == pin {
			return true
		}
	}
	return false
}

func (z *ZoneCoverage) isListed(pin int) bool {
	for _, r := range z.ServedRanges {
		if pin >= r.S && pin <= r.E {
			return true
		}
	}
	for _, p := range z.ServedSingles {
		if p == pin {
			return true
		}
	}
	return false
}
