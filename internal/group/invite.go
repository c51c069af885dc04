package group

import "crypto/rand"

// inviteAlphabet skips 0/O, 1/I and lowercase so codes survive being read
// aloud or typed from a phone screen.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 6

// NewInviteCode returns a random invite code.
func NewInviteCode() string {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf)
}
