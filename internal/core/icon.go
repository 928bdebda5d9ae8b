package core

import "errors"

// IconTag is an enumerated category icon. Clients resolve a tag to a
// renderable asset through IconAsset; unknown tags are rejected at the
// write boundary instead of being looked up reflectively at render time.
type IconTag string

const (
	IconWallet    IconTag = "wallet"
	IconFood      IconTag = "food"
	IconTransport IconTag = "transport"
	IconShopping  IconTag = "shopping"
	IconBills     IconTag = "bills"
	IconHealth    IconTag = "health"
	IconEducation IconTag = "education"
	IconFun       IconTag = "fun"
	IconSalary    IconTag = "salary"
	IconGift      IconTag = "gift"
	IconInvest    IconTag = "invest"
	IconOther     IconTag = "other"
)

var ErrUnknownIcon = errors.New("unknown icon tag")

var iconAssets = map[IconTag]string{
	IconWallet:    "icons/wallet.svg",
	IconFood:      "icons/utensils.svg",
	IconTransport: "icons/car.svg",
	IconShopping:  "icons/shopping-bag.svg",
	IconBills:     "icons/receipt.svg",
	IconHealth:    "icons/heart-pulse.svg",
	IconEducation: "icons/graduation-cap.svg",
	IconFun:       "icons/gamepad.svg",
	IconSalary:    "icons/banknote.svg",
	IconGift:      "icons/gift.svg",
	IconInvest:    "icons/trending-up.svg",
	IconOther:     "icons/circle-dot.svg",
}

func (t IconTag) Valid() bool {
	_, ok := iconAssets[t]
	return ok
}

// IconAsset resolves a tag to its asset path, falling back to the
// generic icon for the empty tag.
func IconAsset(t IconTag) (string, error) {
	if t == "" {
		return iconAssets[IconOther], nil
	}
	asset, ok := iconAssets[t]
	if !ok {
		return "", ErrUnknownIcon
	}
	return asset, nil
}
