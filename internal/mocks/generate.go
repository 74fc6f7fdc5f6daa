package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/stattable --output domain/stattable --outpkg stattablemock --filename provider_mock.go
