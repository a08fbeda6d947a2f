package database

type MockDb struct {
	InitFunc          func() error
	SaveTokenFunc     func(account, token string) error
	LoadTokenFunc     func(account string) (string, error)
	SaveSignatureFunc func(account, signature string) error
	LoadSignatureFunc func(account string) (string, error)
	ClearSessionFunc  func(account string) error
	SaveAbiFunc       func(key, abi, address string) error
	LoadAbiFunc       func(key string) (string, string, error)
	SaveTxStatusFunc  func(record *TxRecord)
	LoadTxsFunc       func(status string) ([]*TxRecord, error)
}

func (mock *MockDb) Init() error {
	if mock.InitFunc != nil {
		return mock.InitFunc()
	}

	return nil
}

func (mock *MockDb) Close() error {
	return nil
}

func (mock *MockDb) SaveToken(account, token string) error {
	if mock.SaveTokenFunc != nil {
		return mock.SaveTokenFunc(account, token)
	}

	return nil
}

func (mock *MockDb) LoadToken(account string) (string, error) {
	if mock.LoadTokenFunc != nil {
		return mock.LoadTokenFunc(account)
	}

	return "", nil
}

func (mock *MockDb) SaveSignature(account, signature string) error {
	if mock.SaveSignatureFunc != nil {
		return mock.SaveSignatureFunc(account, signature)
	}

	return nil
}

func (mock *MockDb) LoadSignature(account string) (string, error) {
	if mock.LoadSignatureFunc != nil {
		return mock.LoadSignatureFunc(account)
	}

	return "", nil
}

func (mock *MockDb) ClearSession(account string) error {
	if mock.ClearSessionFunc != nil {
		return mock.ClearSessionFunc(account)
	}

	return nil
}

func (mock *MockDb) SaveAbi(key, abi, address string) error {
	if mock.SaveAbiFunc != nil {
		return mock.SaveAbiFunc(key, abi, address)
	}

	return nil
}

func (mock *MockDb) LoadAbi(key string) (string, string, error) {
	if mock.LoadAbiFunc != nil {
		return mock.LoadAbiFunc(key)
	}

	return "", "", nil
}

func (mock *MockDb) SaveTxStatus(record *TxRecord) {
	if mock.SaveTxStatusFunc != nil {
		mock.SaveTxStatusFunc(record)
	}
}

func (mock *MockDb) LoadTxs(status string) ([]*TxRecord, error) {
	if mock.LoadTxsFunc != nil {
		return mock.LoadTxsFunc(status)
	}

	return nil, nil
}
