package mocks

//go:generate sh -c "go run go.uber.org/mock/mockgen -build_flags=\"-tags=gomock\" -package mocks -destination inner_codec.go github.com/ddritzenhoff/strandfec/internal/strand InnerCodec"
