package utils

import "github.com/cargo-build/cargo-sdk-go/types"

// GroupResaleItems groups resale items by collection address, keeping their order.
func GroupResaleItems(items []*types.ResaleItem) map[string][]*types.ResaleItem {
	ret := make(map[string][]*types.ResaleItem)
	for _, item := range items {
		ret[item.TokenAddress] = append(ret[item.TokenAddress], item)
	}

	return ret
}
